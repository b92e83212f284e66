package ltcheck

// Language is one entry of the server's supported-language list.
type Language struct {
	// Name, e.g. "Ukrainian".
	Name string `json:"name"`
	// Code, e.g. "uk".
	Code string `json:"code"`
	// LongCode, e.g. "uk-UA".
	LongCode string `json:"longCode"`
}
