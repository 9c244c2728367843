package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/l0p7/hbacd/internal/herr"
)

func TestExactlyOne(t *testing.T) {
	_, err := exactlyOne(nil, "op", "ident")
	require.Error(t, err)
	require.Equal(t, herr.KindNotFound, herr.KindOf(err))

	one := []Entry{{DN: "a"}}
	got, err := exactlyOne(one, "op", "ident")
	require.NoError(t, err)
	require.Equal(t, "a", got.DN)

	two := []Entry{{DN: "a"}, {DN: "b"}}
	_, err = exactlyOne(two, "op", "ident")
	require.Error(t, err)
	require.Equal(t, herr.KindAmbiguous, herr.KindOf(err))
}

func TestSingleValued(t *testing.T) {
	bag := AttrBag{"fqdn": {"client.ipa.test"}}
	v, ok := singleValued(bag, "fqdn")
	require.True(t, ok)
	require.Equal(t, "client.ipa.test", v)

	multi := AttrBag{"fqdn": {"a", "b"}}
	_, ok = singleValued(multi, "fqdn")
	require.False(t, ok)

	_, ok = singleValued(AttrBag{}, "fqdn")
	require.False(t, ok)
}
