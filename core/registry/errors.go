package registry

import "errors"

var (
	// ErrEmptyName is returned when a topic is created with an empty name.
	ErrEmptyName = errors.New("topic name must not be empty")

	// ErrNameTooLong is returned when a topic name exceeds MaxNameLength bytes.
	ErrNameTooLong = errors.New("topic name is too long")

	// ErrTopicExists is returned when creating a topic whose name is taken.
	ErrTopicExists = errors.New("topic already exists")

	// ErrTopicNotFound is returned when looking up an unknown topic name.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrTooManyTopics is returned when the registry is at its topic limit.
	ErrTooManyTopics = errors.New("maximum number of topics reached")

	// ErrTopicBusy is returned by Remove while the topic has open handles.
	ErrTopicBusy = errors.New("topic has open handles")
)
