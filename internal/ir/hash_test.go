package ir

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanIDDeterminism(t *testing.T) {
	plan := IRObject{
		"remove_count": IRInt(1),
		"add_count":    IRInt(1),
		"update_count": IRInt(1),
	}

	id1, err := PlanID(plan)
	require.NoError(t, err)
	id2, err := PlanID(IRObject{
		"update_count": IRInt(1),
		"add_count":    IRInt(1),
		"remove_count": IRInt(1),
	})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not change the ID")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestPlanIDChangesWithContent(t *testing.T) {
	a := MustPlanID(IRObject{"remove_count": IRInt(1)})
	b := MustPlanID(IRObject{"remove_count": IRInt(2)})
	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	v := IRObject{"x": IRInt(1)}
	canonical, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainPlan, canonical), MustPlanID(v))
	assert.NotEqual(t, hashWithDomain("listfuse/other/v1", canonical), MustPlanID(v))
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab"+0x00+"c" must differ from "a"+0x00+"bc".
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestHashHexEncoding(t *testing.T) {
	id := MustPlanID(IRObject{})
	_, err := hex.DecodeString(id)
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9a-f]{64}$", id)
}
