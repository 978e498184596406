package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "HP Z8000 Bluetooth Mouse", want: "'HP Z8000 Bluetooth Mouse'"},
		{in: "Kid's Tablet", want: `"Kid's Tablet"`},
		{in: `Kid's "Pro"`, want: `concat('Kid',"'",'s "Pro"')`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, xpathLiteral(tt.in))
	}
}

func TestLocatorXPaths(t *testing.T) {
	assert.Equal(t, "//*[@id='miceImg']", Category("miceImg").XPath)
	assert.Equal(t, "//a[text()='HP Z8000 Bluetooth Mouse']", ProductLink("HP Z8000 Bluetooth Mouse").XPath)
	assert.Equal(t, "(//tr[@id='product'])[2]//h3", RowName(2).XPath)
	assert.Equal(t, "(//tr[@id='product'])[1]//label[contains(text(),'Color')]/span", RowColor(1).XPath)
	assert.Contains(t, ColorSelector("black").XPath, "='BLACK']")
	assert.Equal(t, "BLACK", ColorSelector(" black ").Arg)
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "category entry laptopsImg", Category("laptopsImg").String())
	assert.Equal(t, "cart row price #3", RowPrice(3).String())
	assert.Equal(t, "cart icon", CartIcon().String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
