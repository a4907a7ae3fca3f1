package core

import "strings"

// Logger is the app-wide logger.
// args may hold errors, extra data maps, a LogContext and the acting user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogContext names the league records a log entry is about.
type LogContext struct {
	GymID     string
	GymnastID string
	UploadID  string
	RequestID string
}

// Fields returns the non-empty ids keyed by their log name.
func (lc LogContext) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 4)
	for key, val := range map[string]string{
		"gym_id":     lc.GymID,
		"gymnast_id": lc.GymnastID,
		"upload_id":  lc.UploadID,
		"request_id": lc.RequestID,
	} {
		if val != "" {
			fields[key] = val
		}
	}
	return fields
}

func (lc LogContext) String() string {
	var parts []string
	for _, kv := range [][2]string{
		{"gym", lc.GymID},
		{"gymnast", lc.GymnastID},
		{"upload", lc.UploadID},
		{"request", lc.RequestID},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}
