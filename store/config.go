package store

import "errors"

// Config holds configuration for the Store. The table name is threaded in
// explicitly at construction; there is no process-wide default.
type Config struct {
	// TableName is the DynamoDB table that holds every entity item.
	TableName string
}

// validate ensures the config is usable.
func (c Config) validate() error {
	if c.TableName == "" {
		return errors.New("tacostore: config requires a table name")
	}
	return nil
}
