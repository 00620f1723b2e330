package model

import "testing"

func TestOriginType_String(t *testing.T) {
	tests := []struct {
		origin OriginType
		want   string
	}{
		{OriginUnknown, "UNKNOWN"},
		{OriginFolder, "FOLDER"},
		{OriginBundle, "BUNDLE"},
		{OriginAdobeBrushLibrary, "ADOBE_BRUSH_LIBRARY"},
		{OriginAdobeStyleLibrary, "ADOBE_STYLE_LIBRARY"},
		{OriginType(99), "UNKNOWN"},
		{OriginType(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.origin.String(); got != tt.want {
			t.Errorf("OriginType(%d).String() = %q, want %q", int(tt.origin), got, tt.want)
		}
	}
}

func TestOriginType_IsContainer(t *testing.T) {
	if OriginFolder.IsContainer() {
		t.Error("folders are not containers")
	}
	if OriginUnknown.IsContainer() {
		t.Error("unknown origins are not containers")
	}
	for _, origin := range []OriginType{OriginBundle, OriginAdobeBrushLibrary, OriginAdobeStyleLibrary} {
		if !origin.IsContainer() {
			t.Errorf("%s should be a container", origin)
		}
	}
}

func TestOriginTypeNames_MatchOrdinals(t *testing.T) {
	names := OriginTypeNames()
	for i, name := range names {
		if OriginType(i).String() != name {
			t.Errorf("names[%d] = %q, but OriginType(%d).String() = %q", i, name, i, OriginType(i).String())
		}
	}
}
