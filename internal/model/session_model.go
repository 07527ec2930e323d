package model

// Session is the authenticated identity of the client process.
// An empty Token means the user is logged out.
type Session struct {
	Token string `json:"token"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
