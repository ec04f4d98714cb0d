package session

// Credentials authorize every Cirrus call. A value is never modified after
// capture; a new login produces a new value.
type Credentials struct {
	CustomerID string `json:"customer_id"`
	ADPToken   string `json:"adp_token"`
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`

	// Cookies is a ready-to-send Cookie header: "name=value; name=value".
	Cookies string `json:"cookies"`
}

// Complete reports whether all four session tokens are present.
func (c Credentials) Complete() bool {
	return c.CustomerID != "" && c.ADPToken != "" && c.DeviceID != "" && c.DeviceType != ""
}

// WithCookies returns a copy of c carrying the given cookie header.
func (c Credentials) WithCookies(header string) Credentials {
	c.Cookies = header
	return c
}
