package models

// User is a registered chat user. UTCOffset is measured in hours west of UTC,
// so local time is UTC minus UTCOffset hours (Moscow is -3).
type User struct {
	UID       int64
	Username  string
	FirstName string
	LastName  string
	ChatID    int64
	UTCOffset int
}
