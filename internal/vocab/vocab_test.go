package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLookupRejectsAmbiguousVariant(t *testing.T) {
	_, err := buildLookup("test", []entry{
		{"juyo", []string{"important"}},
		{"hozon", []string{"important"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "important")
}

func TestBuildLookupAllowsRepeatedVariantSameCanonical(t *testing.T) {
	_, err := buildLookup("test", []entry{
		{"juyo", []string{"juyo", "juyou"}},
	})
	require.NoError(t, err)
}

func TestShippedTablesAreValid(t *testing.T) {
	// init would have panicked on an invalid table; rebuild explicitly so a
	// regression shows up as a failed test, not a package load crash.
	for name, entries := range map[string][]entry{
		"certifications":    certifications,
		"itemTypes":         itemTypes,
		"periods":           periods,
		"provinces":         provinces,
		"signatureStatuses": signatureStatuses,
	} {
		_, err := buildLookup(name, entries)
		assert.NoError(t, err, "table %s", name)
	}
}

func TestCanonicalLookups(t *testing.T) {
	tests := []struct {
		lookup func(string) (string, bool)
		span   string
		want   string
	}{
		{CanonicalCert, "Tokubetsu Hozon", "tokubetsu hozon"},
		{CanonicalCert, "tokuju", "tokubetsu juyo"},
		{CanonicalCert, "Jūyō Token", "juyo"},
		{CanonicalItemType, "Tantou", "tanto"},
		{CanonicalItemType, "fuchi kashira", "fuchi-kashira"},
		{CanonicalPeriod, "Nambokucho", "nanbokucho"},
		{CanonicalProvince, "Sagami", "soshu"},
		{CanonicalSignature, "Mumei", "unsigned"},
		{CanonicalSignature, "zaimei", "signed"},
	}
	for _, tt := range tests {
		got, ok := tt.lookup(tt.span)
		require.True(t, ok, "span %q", tt.span)
		assert.Equal(t, tt.want, got, "span %q", tt.span)
	}

	_, ok := CanonicalCert("masamune")
	assert.False(t, ok)
}

func TestCertVariants(t *testing.T) {
	got := CertVariants("juyo")
	assert.Contains(t, got, "juyo")
	assert.Contains(t, got, "juyo token")

	// Unknown values pass through so exact-match filters still work.
	assert.Equal(t, []string{"mystery paper"}, CertVariants("mystery paper"))
}

func TestTypesForCategory(t *testing.T) {
	assert.Contains(t, TypesForCategory("blades"), "katana")
	assert.Contains(t, TypesForCategory("Tosogu"), "tsuba")
	assert.Nil(t, TypesForCategory("unknown"))
}

func TestNonCollectible(t *testing.T) {
	assert.True(t, IsNonCollectible("book"))
	assert.False(t, IsNonCollectible("katana"))
	assert.ElementsMatch(t, []string{"accessory", "book", "stand"}, NonCollectibleTypes())
}
