package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/qmlscan/internal/symbols"
)

func TestBlankQtPreservesOffsets(t *testing.T) {
	t.Parallel()

	src := []byte(`class Foo : public QObject
{
    Q_OBJECT
    Q_PROPERTY(int value READ value
               WRITE setValue)
public:
    Q_INVOKABLE void reset();
signals:
    void changed();
public slots:
    void apply();
};
`)
	out, m := blankQt(src)
	require.Len(t, out, len(src))

	for i := range src {
		if src[i] == '\n' {
			assert.Equal(t, byte('\n'), out[i], "line break at %d", i)
		}
	}
	assert.NotContains(t, string(out), "Q_OBJECT")
	assert.NotContains(t, string(out), "Q_PROPERTY")
	assert.NotContains(t, string(out), "Q_INVOKABLE")
	assert.NotContains(t, string(out), "slots")
	assert.Contains(t, string(out), "public :")
	assert.Contains(t, string(out), "void reset();")

	require.Len(t, m.macros, 1)
	assert.Equal(t, "Q_PROPERTY", m.macros[0].Name)
	assert.Contains(t, m.macros[0].Args, "WRITE setValue")
	assert.Equal(t, m.macros[0].Args, string(src[m.macros[0].ArgsPos:m.macros[0].ArgsPos+len(m.macros[0].Args)]))

	require.Len(t, m.next, 1)
	assert.Equal(t, symbols.Invokable, m.next[0].flags)

	assert.Len(t, m.sections, 2)
	for pos, flags := range m.sections {
		switch flags {
		case symbols.Signal:
			assert.Equal(t, "signals", string(src[pos:pos+7]))
		case symbols.Slot:
			assert.Equal(t, "public", string(src[pos:pos+6]))
		}
	}
}

func TestBlankQtSkipsCommentsAndLiterals(t *testing.T) {
	t.Parallel()

	src := []byte(`// Q_OBJECT in a comment
const char *s = "Q_INVOKABLE";
/* slots: */ const char *r = R"x(signals:)x";
int slots = 1;
`)
	out, m := blankQt(src)
	assert.Equal(t, string(src), string(out))
	assert.Empty(t, m.words)
	assert.Empty(t, m.sections)
}

func TestNextFlags(t *testing.T) {
	t.Parallel()

	m := &qtMarkers{next: []qtMarker{
		{pos: 10, flags: symbols.Invokable},
		{pos: 20, flags: symbols.Signal},
	}}
	assert.Equal(t, symbols.Invokable, m.nextFlags(0, 15))
	assert.Equal(t, symbols.Invokable|symbols.Signal, m.nextFlags(10, 21))
	assert.Equal(t, symbols.FunctionFlags(0), m.nextFlags(21, 100))
}

func TestParseProperty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args     string
		name     string
		typ      string
		writable bool
	}{
		{"int value READ value WRITE setValue NOTIFY valueChanged", "value", "int", true},
		{"QString name READ name CONSTANT", "name", "QString", false},
		{"QObject *target READ target", "target", "QObject *", false},
		{"QList<QObject *> items READ items", "items", "QList<QObject *>", false},
		{"const QString &label MEMBER m_label", "label", "const QString &", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := parseProperty(0, tt.args)
			require.NotNil(t, p)
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.typ, symbols.Overview{}.TypeString(p.Type))
			assert.Equal(t, tt.writable, p.Flags&symbols.WriteFunction != 0)
		})
	}

	assert.Nil(t, parseProperty(0, "READ value"))
}
