package pipeline

// Envelope is the JSON body returned by the generate-qr endpoint.
type Envelope struct {
	Success       bool   `json:"success"`
	QRCode        string `json:"qr_code,omitempty"`
	OriginalImage string `json:"original_image,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Assemble converts an outcome into the client envelope. Only the error message is
// exposed on failure.
func Assemble(out Outcome) Envelope {
	if out.OK() {
		return Envelope{
			Success:       true,
			QRCode:        out.QR.PublicPath,
			OriginalImage: out.URL,
		}
	}
	msg := "unknown error"
	if out.Err != nil {
		msg = out.Err.Error()
	}
	return Envelope{Success: false, Error: msg}
}
