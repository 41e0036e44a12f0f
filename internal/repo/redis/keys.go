package redis

import "fmt"

// Key prefix for all registration data
const keyPrefix = "scouthub"

// registrationKey returns the Redis key holding one registration document
func registrationKey(id string) string {
	return fmt.Sprintf("%s:registration:%s", keyPrefix, id)
}

// registrationsIndexKey returns the Redis key for the SET of all registration ids
func registrationsIndexKey() string {
	return fmt.Sprintf("%s:idx:registrations", keyPrefix)
}
