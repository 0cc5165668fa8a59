package locale

// ISO 639-1 language codes with English names. Names double as free-text aliases.
var languageNames = map[string]string{
	"ar": "arabic",
	"bg": "bulgarian",
	"cs": "czech",
	"da": "danish",
	"de": "german",
	"el": "greek",
	"en": "english",
	"es": "spanish",
	"et": "estonian",
	"fi": "finnish",
	"fr": "french",
	"he": "hebrew",
	"hi": "hindi",
	"hr": "croatian",
	"hu": "hungarian",
	"id": "indonesian",
	"it": "italian",
	"ja": "japanese",
	"ko": "korean",
	"lt": "lithuanian",
	"lv": "latvian",
	"ms": "malay",
	"nb": "norwegian",
	"nl": "dutch",
	"pl": "polish",
	"pt": "portuguese",
	"ro": "romanian",
	"ru": "russian",
	"sk": "slovak",
	"sl": "slovenian",
	"sv": "swedish",
	"th": "thai",
	"tr": "turkish",
	"uk": "ukrainian",
	"vi": "vietnamese",
	"zh": "chinese",
}

// Extra language aliases beyond the English name.
var languageAliases = map[string]string{
	"mandarin":   "zh",
	"deutsch":    "de",
	"francais":   "fr",
	"espanol":    "es",
	"castellano": "es",
	"italiano":   "it",
	"nihongo":    "ja",
	"hangul":     "ko",
	"brazilian":  "pt",
	"bokmal":     "nb",
	"flemish":    "nl",
}

// ISO 3166-1 alpha-2 codes. The first alias is the canonical English name.
var countryAliases = map[string][]string{
	"AE": {"united arab emirates", "uae", "emirates"},
	"AR": {"argentina"},
	"AT": {"austria", "osterreich"},
	"AU": {"australia"},
	"BE": {"belgium", "belgique", "belgie"},
	"BG": {"bulgaria"},
	"BR": {"brazil", "brasil"},
	"CA": {"canada"},
	"CH": {"switzerland", "schweiz", "suisse", "svizzera"},
	"CL": {"chile"},
	"CN": {"china", "mainland china", "prc", "people's republic of china"},
	"CO": {"colombia"},
	"CZ": {"czech republic", "czechia"},
	"DE": {"germany", "deutschland"},
	"DK": {"denmark", "danmark"},
	"EE": {"estonia"},
	"EG": {"egypt"},
	"ES": {"spain", "espana"},
	"FI": {"finland", "suomi"},
	"FR": {"france"},
	"GB": {"united kingdom", "uk", "great britain", "britain", "england", "scotland", "wales"},
	"GR": {"greece", "hellas"},
	"HK": {"hong kong"},
	"HR": {"croatia", "hrvatska"},
	"HU": {"hungary", "magyarorszag"},
	"ID": {"indonesia"},
	"IE": {"ireland", "eire"},
	"IL": {"israel"},
	"IN": {"india", "bharat"},
	"IT": {"italy", "italia"},
	"JP": {"japan", "nippon", "nihon"},
	"KR": {"south korea", "korea", "republic of korea", "rok", "hanguk"},
	"LT": {"lithuania"},
	"LU": {"luxembourg"},
	"LV": {"latvia"},
	"MO": {"macau", "macao"},
	"MX": {"mexico"},
	"MY": {"malaysia"},
	"NL": {"netherlands", "the netherlands", "holland", "nederland"},
	"NO": {"norway", "norge"},
	"NZ": {"new zealand", "aotearoa"},
	"PE": {"peru"},
	"PH": {"philippines"},
	"PL": {"poland", "polska"},
	"PT": {"portugal"},
	"RO": {"romania"},
	"RU": {"russia", "russian federation"},
	"SA": {"saudi arabia", "ksa"},
	"SE": {"sweden", "sverige"},
	"SG": {"singapore"},
	"SI": {"slovenia"},
	"SK": {"slovakia"},
	"TH": {"thailand"},
	"TR": {"turkey", "turkiye"},
	"TW": {"taiwan"},
	"UA": {"ukraine"},
	"US": {"united states", "united states of america", "usa", "america"},
	"VN": {"vietnam", "viet nam"},
	"ZA": {"south africa"},
}

// Countries with one dominant content language. Multilingual markets
// (BE, CA, CH, IN, LU, SG, HK, MY) are intentionally absent.
var primaryLanguage = map[string]string{
	"AE": "ar", "AR": "es", "AT": "de", "AU": "en", "BG": "bg", "BR": "pt",
	"CL": "es", "CN": "zh", "CO": "es", "CZ": "cs", "DE": "de", "DK": "da",
	"EE": "et", "EG": "ar", "ES": "es", "FI": "fi", "FR": "fr", "GB": "en",
	"GR": "el", "HR": "hr", "HU": "hu", "ID": "id", "IE": "en", "IL": "he",
	"IT": "it", "JP": "ja", "KR": "ko", "LT": "lt", "LV": "lv", "MX": "es",
	"NL": "nl", "NO": "nb", "NZ": "en", "PE": "es", "PL": "pl", "PT": "pt",
	"RO": "ro", "RU": "ru", "SA": "ar", "SE": "sv", "SI": "sl", "SK": "sk",
	"TH": "th", "TR": "tr", "TW": "zh", "UA": "uk", "US": "en", "VN": "vi",
	"ZA": "en",
}

// Languages spoken as the primary language of exactly one market.
var primaryCountry = map[string]string{
	"bg": "BG", "cs": "CZ", "da": "DK", "el": "GR", "et": "EE", "fi": "FI",
	"he": "IL", "hi": "IN", "hr": "HR", "hu": "HU", "id": "ID", "it": "IT",
	"ja": "JP", "ko": "KR", "lt": "LT", "lv": "LV", "nb": "NO", "pl": "PL",
	"ro": "RO", "sk": "SK", "sl": "SI", "sv": "SE", "th": "TH", "tr": "TR",
	"uk": "UA", "vi": "VN",
}

// Phrases that contain a country alias but name no single market. A match
// consumes the words and resolves to nothing.
var ambiguousPhrases = []string{
	"north america",
	"south america",
	"central america",
	"latin america",
	"north korea",
	"korean peninsula",
	"new england",
}
