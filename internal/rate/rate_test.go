package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromText(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{name: "plain percent", text: "A buffer of 1.5% applies to all exposures", want: 1.5},
		{name: "decimal comma", text: "Puffer von 2,5 % auf inländische Risikopositionen", want: 2.5},
		{name: "space before percent", text: "set at 3 %", want: 3},
		{name: "multiple takes max", text: "raised from 0.5% to 1%", want: 1},
		{name: "above hundred excluded", text: "applies to 250% risk weights and a 2% buffer", want: 2},
		{name: "rate of fallback", text: "a systemic risk buffer rate of 1.75 applies", want: 1.75},
		{name: "rate is fallback", text: "the rate is 2 since January", want: 2},
		{name: "no match", text: "measure under Article 458", want: 0},
		{name: "empty", text: "", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, FromText(tc.text), 1e-9)
		})
	}
}

func TestFromCell(t *testing.T) {
	cases := []struct {
		name string
		cell string
		want float64
	}{
		{name: "plain number", cell: "1.5", want: 1.5},
		{name: "decimal comma", cell: "2,25", want: 2.25},
		{name: "percent suffix", cell: "0.5%", want: 0.5},
		{name: "year excluded", cell: "2021", want: 0},
		{name: "year with rate", cell: "1% (from 2023)", want: 1},
		{name: "large value excluded", cell: "125", want: 0},
		{name: "text only", cell: "pending", want: 0},
		{name: "empty", cell: "", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, FromCell(tc.cell), 1e-9)
		})
	}
}

func TestForRecord(t *testing.T) {
	// A parseable dedicated cell wins over the description.
	assert.InDelta(t, 2.0, ForRecord("2", "buffer of 1%"), 1e-9)
	// Empty cell falls back to the text.
	assert.InDelta(t, 1.0, ForRecord("", "buffer of 1%"), 1e-9)
	// Unparseable cell falls back to the text.
	assert.InDelta(t, 1.0, ForRecord("see description", "buffer of 1%"), 1e-9)
	// Neither yields anything.
	assert.InDelta(t, 0.0, ForRecord("", "no numbers here"), 1e-9)
}

func TestText(t *testing.T) {
	assert.Equal(t, "1.5%", Text(1.5))
	assert.Equal(t, "2%", Text(2))
	assert.Equal(t, "0% / Inactive", Text(0))
}
