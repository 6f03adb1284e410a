// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inmobix/backend/pkg/slug"
)

/*
TestFrom verifies the slug transformation pipeline for listing titles.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_title", "Casa en Medellin", "casa-en-medellin"},
		{"accented_spanish", "Apartamento en Chapinero, Bogotá", "apartamento-en-chapinero-bogota"},
		{"numbers_kept", "Penthouse 302 - Torre 5", "penthouse-302-torre-5"},
		{"multi_spaces_collapsed", "Finca   con  lago", "finca-con-lago"},
		{"leading_trailing_trimmed", "  ¡Oferta!  ", "oferta"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
