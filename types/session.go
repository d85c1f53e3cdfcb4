package types

// Session carries the caller's credentials explicitly into every service call.
type Session struct {
	UserID    uint   `json:"userId"`
	Role      int    `json:"role"`
	Token     string `json:"-"`
	RequestID string `json:"requestId"`
}

// IsZero reports whether the session is anonymous.
func (s Session) IsZero() bool {
	return s.UserID == 0
}
