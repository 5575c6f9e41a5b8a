package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
)

const (
	dnbExport = "Dato;Forklaring;Rentedato;Ut fra konto;Inn på konto\n" +
		"01.03.2024;Varekjøp Rema 1000 Grünerløkka;01.03.2024;249,90;\n" +
		"04.03.2024;Overføring Blåbærveien sameie;04.03.2024;;1200,00\n"

	nordeaEuroExport = "Bokføringsdato;Beløp;Tittel\n" +
		"2024/03/01;-12,50 €;Kafé Ørsta\n"
)

func encode(t *testing.T, e xenc.Encoding, s string) []byte {
	t.Helper()

	b, err := e.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)

	return b
}

func TestNewUTF8Reader(t *testing.T) {
	// The sniff window ends on the first byte of "ø".
	straddling := strings.Repeat("a", 4095) + "ø;1\n"

	tests := []struct {
		name    string
		input   []byte
		want    string
		charset encoding.Charset
	}{
		{
			name:    "UTF-8 passthrough",
			input:   []byte(dnbExport),
			want:    dnbExport,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF-8 BOM is dropped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, dnbExport...),
			want:    dnbExport,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF-8 cut at the sniff window",
			input:   []byte(straddling),
			want:    straddling,
			charset: encoding.UTF8,
		},
		{
			name:    "DNB Latin-1 export",
			input:   encode(t, charmap.Windows1252, dnbExport),
			want:    dnbExport,
			charset: encoding.Windows1252,
		},
		{
			name:    "Euro sign in Windows-1252",
			input:   encode(t, charmap.Windows1252, nordeaEuroExport),
			want:    nordeaEuroExport,
			charset: encoding.Windows1252,
		},
		{
			name:    "Euro sign in ISO-8859-15",
			input:   encode(t, charmap.ISO8859_15, nordeaEuroExport),
			want:    nordeaEuroExport,
			charset: encoding.ISO885915,
		},
		{
			name:    "UTF-16LE from Excel",
			input:   encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), dnbExport),
			want:    dnbExport,
			charset: encoding.UTF16LE,
		},
		{
			name:    "UTF-16BE",
			input:   encode(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nordeaEuroExport),
			want:    nordeaEuroExport,
			charset: encoding.UTF16BE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sniff := tt.input
			if len(sniff) > 4096 {
				sniff = sniff[:4096]
			}

			assert.Equal(t, tt.charset, encoding.Detect(sniff))

			r, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDetect_Empty(t *testing.T) {
	assert.Equal(t, encoding.UTF8, encoding.Detect(nil))
}
