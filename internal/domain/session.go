package domain

// Session is the authenticated identity plus its bearer token. A session
// is either fully present (token and actor) or fully absent; callers must
// treat anything in between as absent.
type Session struct {
	Actor       Actor
	AccessToken string
}

func (s Session) Present() bool {
	return s.AccessToken != "" && s.Actor.ID != ""
}
