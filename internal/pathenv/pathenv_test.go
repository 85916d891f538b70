package pathenv

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frsBin = `C:\Program Files\FRS_Manager\bin`

func TestAddAppendsSegment(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		want    string
	}{
		{"empty", "", frsBin},
		{"existing entries", `C:\Windows;C:\Tools`, `C:\Windows;C:\Tools;` + frsBin},
		{"trailing separator", `C:\Windows;`, `C:\Windows;` + frsBin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(tt.initial)
			changed, err := NewManager(store).Add(frsBin)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, store.Value())
		})
	}
}

func TestAddIsNoOpWhenPresent(t *testing.T) {
	store := NewMemoryStore(frsBin + `;C:\Windows`)
	changed, err := NewManager(store).Add(frsBin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, store.Writes())
}

func TestAddMatchesWholeSegmentsOnly(t *testing.T) {
	// A longer path that merely contains the segment must not count as present.
	store := NewMemoryStore(frsBin + `\legacy`)
	changed, err := NewManager(store).Add(frsBin)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, frsBin+`\legacy;`+frsBin, store.Value())
}

func TestRemove(t *testing.T) {
	store := NewMemoryStore(`C:\Windows;` + frsBin + `;C:\Tools;` + frsBin)
	changed, err := NewManager(store).Remove(frsBin)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `C:\Windows;C:\Tools`, store.Value())
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	store := NewMemoryStore(`C:\Windows;` + frsBin + `\legacy`)
	changed, err := NewManager(store).Remove(frsBin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, store.Writes())
	assert.Equal(t, `C:\Windows;`+frsBin+`\legacy`, store.Value())
}

func TestAddThenRemoveRestoresSegments(t *testing.T) {
	initials := []string{
		"",
		`C:\Windows`,
		`C:\Windows;C:\Tools;D:\bin`,
		`C:\Windows;C:\Tools;`,
	}

	for _, initial := range initials {
		store := NewMemoryStore(initial)
		m := NewManager(store)

		_, err := m.Add(frsBin)
		require.NoError(t, err)
		has, err := m.Has(frsBin)
		require.NoError(t, err)
		assert.True(t, has)

		_, err = m.Remove(frsBin)
		require.NoError(t, err)
		assert.ElementsMatch(t, segments(initial), segments(store.Value()), "initial %q", initial)
	}
}

func TestContainsIsCaseSensitive(t *testing.T) {
	assert.True(t, Contains(`a;`+frsBin, frsBin))
	assert.False(t, Contains(`a;`+strings.ToLower(frsBin), frsBin))
	assert.False(t, Contains("", frsBin))
}

func TestReadAndWriteFailuresAreDistinct(t *testing.T) {
	t.Run("unset value", func(t *testing.T) {
		_, err := NewManager(NewUnsetMemoryStore()).Add(frsBin)
		assert.ErrorIs(t, err, ErrRead)
		assert.NotErrorIs(t, err, ErrWrite)
	})

	t.Run("read error", func(t *testing.T) {
		store := NewMemoryStore("")
		store.ReadErr = errors.New("access denied")
		_, err := NewManager(store).Remove(frsBin)
		assert.ErrorIs(t, err, ErrRead)
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("write error", func(t *testing.T) {
		store := NewMemoryStore(`C:\Windows`)
		store.WriteErr = errors.New("registry locked")
		_, err := NewManager(store).Add(frsBin)
		assert.ErrorIs(t, err, ErrWrite)
		assert.NotErrorIs(t, err, ErrRead)
		assert.Equal(t, `C:\Windows`, store.Value())
	})
}

func TestUnsupportedStore(t *testing.T) {
	_, err := NewManager(Unsupported{}).Add(frsBin)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func segments(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ";") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
