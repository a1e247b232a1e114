package sl_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("something went wrong"), "something went wrong"},
		{"wrapped", fmt.Errorf("storage.jsonfile.Create: %w", errors.New("disk full")), "storage.jsonfile.Create: disk full"},
		{"nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := sl.Err(tt.err)
			assert.Equal(t, "error", attr.Key)
			assert.Equal(t, slog.StringValue(tt.want), attr.Value)
		})
	}
}
