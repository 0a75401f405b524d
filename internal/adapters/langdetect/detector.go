package langdetect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetermined is returned when the text carries no usable signal
var ErrUndetermined = errors.New("language could not be determined")

// whatlanggo reports ISO 639-3; chat language tables are keyed by ISO 639-1
var iso6391 = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Hin: "hi",
	whatlanggo.Ben: "bn",
	whatlanggo.Tel: "te",
	whatlanggo.Tam: "ta",
	whatlanggo.Mar: "mr",
	whatlanggo.Guj: "gu",
	whatlanggo.Kan: "kn",
	whatlanggo.Mal: "ml",
	whatlanggo.Pan: "pa",
	whatlanggo.Urd: "ur",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Cmn: "zh",
	whatlanggo.Jpn: "ja",
	whatlanggo.Arb: "ar",
	whatlanggo.Por: "pt",
	whatlanggo.Rus: "ru",
}

// Detector identifies the language of chat messages
type Detector struct{}

// NewDetector creates a new Detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the ISO 639-1 code of the text's language. Languages
// outside the chat language table are reported as an error.
func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}
	info := whatlanggo.Detect(text)
	code, ok := iso6391[info.Lang]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndetermined, info.Lang.Iso6393())
	}
	return code, nil
}
