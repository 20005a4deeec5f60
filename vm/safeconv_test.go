package vm

import (
	"math"
	"testing"
)

func TestSafeInt32ToUint32(t *testing.T) {
	tests := []struct {
		input     int32
		expected  uint32
		shouldErr bool
	}{
		{0, 0, false},
		{1, 1, false},
		{math.MaxInt32, math.MaxInt32, false},
		{-1, 0, true},
		{-100, 0, true},
		{math.MinInt32, 0, true},
	}

	for _, tt := range tests {
		result, err := SafeInt32ToUint32(tt.input)
		if tt.shouldErr {
			if err == nil {
				t.Errorf("SafeInt32ToUint32(%d) expected error but got none", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("SafeInt32ToUint32(%d) unexpected error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("SafeInt32ToUint32(%d) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestSafeUint32ToUint16(t *testing.T) {
	tests := []struct {
		input     uint32
		expected  uint16
		shouldErr bool
	}{
		{0, 0, false},
		{1, 1, false},
		{math.MaxUint16, math.MaxUint16, false},
		{math.MaxUint16 + 1, 0, true},
		{math.MaxUint32, 0, true},
	}

	for _, tt := range tests {
		result, err := SafeUint32ToUint16(tt.input)
		if tt.shouldErr {
			if err == nil {
				t.Errorf("SafeUint32ToUint16(%d) expected error but got none", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("SafeUint32ToUint16(%d) unexpected error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("SafeUint32ToUint16(%d) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestSafeUint32ToUint8(t *testing.T) {
	tests := []struct {
		input     uint32
		expected  uint8
		shouldErr bool
	}{
		{0, 0, false},
		{1, 1, false},
		{math.MaxUint8, math.MaxUint8, false},
		{math.MaxUint8 + 1, 0, true},
		{math.MaxUint32, 0, true},
	}

	for _, tt := range tests {
		result, err := SafeUint32ToUint8(tt.input)
		if tt.shouldErr {
			if err == nil {
				t.Errorf("SafeUint32ToUint8(%d) expected error but got none", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("SafeUint32ToUint8(%d) unexpected error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("SafeUint32ToUint8(%d) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestAsInt32(t *testing.T) {
	tests := []struct {
		input    uint32
		expected int32
	}{
		{0, 0},
		{1, 1},
		{0x7FFFFFFF, 0x7FFFFFFF},
		{0x80000000, -2147483648},
		{0xFFFFFFFF, -1},
	}

	for _, tt := range tests {
		result := AsInt32(tt.input)
		if result != tt.expected {
			t.Errorf("AsInt32(0x%X) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestAsUint32(t *testing.T) {
	tests := []struct {
		input    int32
		expected uint32
	}{
		{0, 0},
		{1, 1},
		{-1, 0xFFFFFFFF},
		{math.MinInt32, 0x80000000},
	}

	for _, tt := range tests {
		result := AsUint32(tt.input)
		if result != tt.expected {
			t.Errorf("AsUint32(%d) = 0x%X, expected 0x%X", tt.input, result, tt.expected)
		}
	}
}
