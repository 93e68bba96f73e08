package sig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `Digital Signature Info of: /tmp/dokumentas.pdf
Signature #1:
  - Signer Certificate Common Name: JONAS JONAITIS
  - Signing Time: Jan 15 2023 10:30:45 GMT
  - Signing Hash Algorithm: SHA-256
  - Signature Type: ETSI.CAdES.detached
  - Signed Ranges: [0 - 12345], [20000 - 30000]
  - Total document signed
Signature #2:
  - Signer Certificate Common Name: ONA ONAITE
  - Signing Time: vakar
  - Signature Validation: Signature is Valid.
`

func TestParseReport(t *testing.T) {
	signatures := ParseReport(sampleReport)
	require.Len(t, signatures, 2)

	first := signatures[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "JONAS JONAITIS", first.Fields["signerCertificateCommonName"])
	assert.Equal(t, "SHA-256", first.Fields["signingHashAlgorithm"])
	assert.Equal(t, "ETSI.CAdES.detached", first.Fields["signatureType"])
	assert.Equal(t, [][2]int{{0, 12345}, {20000, 30000}}, first.SignedRanges)
	assert.True(t, first.TotalDocumentSigned)
	require.NotNil(t, first.SigningTime)
	assert.Equal(t, 2023, first.SigningTime.Year())
	assert.Equal(t, time.January, first.SigningTime.Month())

	second := signatures[1]
	assert.Equal(t, 2, second.Number)
	assert.False(t, second.TotalDocumentSigned)
	// unparseable signing time stays as a plain field
	assert.Nil(t, second.SigningTime)
	assert.Equal(t, "vakar", second.Fields["signingTime"])
	assert.Equal(t, "Signature is Valid.", second.Fields["signatureValidation"])
}

func TestParseReportMinimal(t *testing.T) {
	report := "Signature #1:\n- Signing Time: Jan 1 2020\n- Total document signed"

	signatures := ParseReport(report)
	require.Len(t, signatures, 1)

	s := signatures[0]
	assert.Equal(t, 1, s.Number)
	assert.True(t, s.TotalDocumentSigned)
	require.NotNil(t, s.SigningTime)
	assert.Equal(t, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), *s.SigningTime)
}

func TestParseReportIgnoresNoise(t *testing.T) {
	assert.Empty(t, ParseReport(""))
	assert.Empty(t, ParseReport("File does not contain any signatures"))
	// field lines before any header are dropped
	assert.Empty(t, ParseReport("- Signing Time: Jan 1 2020"))
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Signing Time", "signingTime"},
		{"Signer Certificate Common Name", "signerCertificateCommonName"},
		{"Signature Validation", "signatureValidation"},
		{"Signing Hash Algorithm", "signingHashAlgorithm"},
		{"Signed Ranges", "signedRanges"},
		{"CRL", "crl"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, camelCase(tt.in), "camelCase(%q)", tt.in)
	}
}

func TestParseSignedRanges(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 1234}}, parseSignedRanges("[0 - 1234]"))
	assert.Equal(t, [][2]int{{0, 100}, {200, 300}}, parseSignedRanges("[0 - 100], [200 - 300]"))
	assert.Nil(t, parseSignedRanges("netinkamas"))
}

func TestSignatureMarshalJSON(t *testing.T) {
	when := time.Date(2023, time.June, 15, 14, 30, 22, 0, time.UTC)
	s := Signature{
		Number:              1,
		Fields:              map[string]string{"signerCertificateCommonName": "JONAS JONAITIS"},
		SignedRanges:        [][2]int{{0, 100}},
		SigningTime:         &when,
		TotalDocumentSigned: true,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(1), decoded["signatureNumber"])
	assert.Equal(t, "JONAS JONAITIS", decoded["signerCertificateCommonName"])
	assert.Equal(t, true, decoded["totalDocumentSigned"])
	assert.Contains(t, decoded, "signedRanges")
	assert.Contains(t, decoded, "signingTime")
}
