package block

import "testing"

func TestConvention_DeclaredName(t *testing.T) {
	c := DefaultConvention()
	tests := []struct {
		name     string
		line     string
		wantName string
		wantOK   bool
	}{
		{"plain", "    fn socket() -> TestSocket {", "socket", true},
		{"test", "    fn test_closed_reject() {", "test_closed_reject", true},
		{"deeper indent", "        fn inner() {", "", false},
		{"shallower indent", "fn top() {", "", false},
		{"generic", "    fn recv<F>(socket: &mut TestSocket, f: F) {", "", false},
		{"no paren", "    fn broken", "", false},
		{"other keyword", "    let fnx = 1;", "", false},
		{"empty name", "    fn (x) {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.DeclaredName(tt.line)
			if got != tt.wantName || ok != tt.wantOK {
				t.Errorf("DeclaredName(%q) = (%q, %v), want (%q, %v)", tt.line, got, ok, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestConvention_Declares(t *testing.T) {
	c := DefaultConvention()
	line := "    fn test_out_of_order_extra() {"
	if c.Declares(line, "test_out_of_order") {
		t.Error("prefix name must not match")
	}
	if !c.Declares(line, "test_out_of_order_extra") {
		t.Error("exact name should match")
	}
	if c.Declares(line, "") {
		t.Error("empty name must never match")
	}
}

func TestConvention_Lines(t *testing.T) {
	c := DefaultConvention()
	tests := []struct {
		line      string
		marker    bool
		closing   bool
		attribute bool
	}{
		{"    #[test]", true, false, false},
		{"    #[test]  ", true, false, false},
		{"        #[test]", false, false, false},
		{"    #[should_panic(expected = \"x\")]", false, false, true},
		{"    }", false, true, false},
		{"    }\r", false, true, false},
		{"        }", false, false, false},
		{"    });", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		if got := c.IsMarker(tt.line); got != tt.marker {
			t.Errorf("IsMarker(%q) = %v, want %v", tt.line, got, tt.marker)
		}
		if got := c.IsClosing(tt.line); got != tt.closing {
			t.Errorf("IsClosing(%q) = %v, want %v", tt.line, got, tt.closing)
		}
		if got := c.IsAttribute(tt.line); got != tt.attribute {
			t.Errorf("IsAttribute(%q) = %v, want %v", tt.line, got, tt.attribute)
		}
	}
}

func TestBlock_String(t *testing.T) {
	b := Block{Kind: TestCase, Name: "t1", Position: Position{Start: 3, End: 7}, MarkerLine: 3}
	if got, want := b.String(), "test t1 [4-8]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := b.Position.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := Kind(7).String(); got != "Kind(7)" {
		t.Errorf("unknown kind String() = %q", got)
	}
}
