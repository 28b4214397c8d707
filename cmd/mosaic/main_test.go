package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/mosaic-dev/loader/domain/errors"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "setup failure", err: domainerrors.NewSetupError(domainerrors.StageRead, errors.New("missing")), code: 2},
		{name: "other failure", err: errors.New("boom"), code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.code, report(&buf, tt.err))
			assert.Equal(t, "mosaic: "+tt.err.Error()+"\n", buf.String())
			assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(tt.err.Error())))
		})
	}
}
