package common

// SessionCookieName is the cookie that carries the session token between
// the browser and the server.
const SessionCookieName = "quickpad_session"
