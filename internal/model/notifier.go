package model

// Notifier surfaces short-lived messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Warning(msg string)
	Info(msg string)
}
