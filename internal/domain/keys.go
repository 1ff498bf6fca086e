package domain

// KeyPrefix is the namespace prefix for all keys in the database.
const KeyPrefix = "thesisrepo:"
