package domain

// DefaultKeyPrefix namespaces every key the service writes or indexes.
const DefaultKeyPrefix = "contentfinder:"
