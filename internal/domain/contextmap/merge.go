package contextmap

// Merge deep-merges sources into one Map. Sources are ordered from most to least
// explicit: for scalar leaves the first non-blank value wins, list leaves are
// unioned in first-seen order, nested maps merge recursively. Blank values never
// overwrite present ones. A merged leaf is soft only when every contributing
// source marked it soft.
func Merge(sources ...Map) Map {
	out := Map{}
	for _, src := range sources {
		out = mergeInto(out, src)
	}
	return out
}

func mergeInto(dst, src Map) Map {
	for _, k := range src.keys {
		v := src.values[k]
		if v.IsBlank() {
			continue
		}
		srcSoft := src.IsSoft(k)
		existing, ok := dst.values[k]

		if !ok || existing.IsBlank() {
			dst = dst.clone()
			dst.put(k, v)
			if srcSoft {
				dst.markSoft(k)
			} else {
				delete(dst.soft, k)
			}
			continue
		}

		dstSoft := dst.IsSoft(k)
		switch {
		case existing.kind == KindMap && v.kind == KindMap:
			base := existing.nested
			if dstSoft && !srcSoft {
				base = softened(base)
			}
			incoming := v.nested
			if srcSoft && !dstSoft {
				incoming = softened(incoming)
			}
			dst = dst.clone()
			dst.put(k, Nested(mergeInto(base, incoming)))
			if !srcSoft {
				delete(dst.soft, k)
			}
		case existing.kind == KindList && v.kind != KindMap:
			dst = dst.clone()
			dst.put(k, Value{kind: KindList, list: unionStrings(existing.list, v.Strings())})
			if !srcSoft {
				delete(dst.soft, k)
			}
		}
		// Scalar already present, or kinds disagree: the earlier source wins.
	}
	return dst
}

// Soften returns a copy of m in which every value is soft. Used for contexts
// that are inferred as a whole, such as interpretation hints.
func Soften(m Map) Map {
	return softened(m)
}

// softened pushes softness down onto every top-level key of m.
func softened(m Map) Map {
	out := m.clone()
	for _, k := range out.keys {
		out.markSoft(k)
	}
	return out
}
