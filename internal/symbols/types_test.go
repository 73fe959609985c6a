package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"  unsigned   int ", "unsigned int"},
		{"QString", "QString"},
		{"const QString &", "const QString &"},
		{"QString const&", "const QString &"},
		{"QObject*", "QObject *"},
		{"QObject **", "QObject * *"},
		{"QList<QObject *>", "QList<QObject *>"},
		{"QObject *const", "QObject *const"},
		{"QVariant &&", "QVariant &&"},
	}

	var o Overview
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, o.TypeString(ParseType(tt.in)))
		})
	}
}

func TestIsPointer(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPointer(ParseType("QObject *")))
	assert.False(t, IsPointer(ParseType("QObject *&")))
	assert.False(t, IsPointer(ParseType("int")))
	assert.False(t, IsPointer(nil))
}
