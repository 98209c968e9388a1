package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	namespaces := []string{"official", "intermediary", "named"}

	tests := []struct {
		name     string
		expected []string
	}{
		{"nmaed", []string{"named"}},
		{"offical", []string{"official"}},
		{"intermediate", []string{"intermediary"}},
		{"quilt", []string{}},
		{"named", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Suggest(tt.name, namespaces))
		})
	}
}
