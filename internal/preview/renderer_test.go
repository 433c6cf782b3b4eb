package preview

import (
	"errors"
	"strings"
	"testing"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantName  string
		wantKind  Kind
		wantProps MockProps
		contains  []string
		excludes  []string
	}{
		{
			name: "button with children",
			code: `interface SubmitButtonProps {
  children: React.ReactNode;
  onClick?: () => void;
}
export function SubmitButton({ children, onClick }: SubmitButtonProps) {}`,
			wantName:  "SubmitButton",
			wantKind:  KindButton,
			wantProps: MockProps{Children: "SubmitButton Preview", OnClick: "SubmitButton clicked"},
			contains:  []string{">SubmitButton Preview</button>", `data-click="SubmitButton clicked"`},
		},
		{
			name:     "button keyword wins over card",
			code:     `export function CardButton() {}`,
			wantName: "CardButton",
			wantKind: KindButton,
			contains: []string{">CardButton</button>"},
		},
		{
			name:     "button falls back to label",
			code:     "interface IconButtonProps { label: string }\nexport function IconButton() {}",
			wantName: "IconButton",
			wantKind: KindButton,
			contains: []string{">Sample Label</button>"},
		},
		{
			name:      "card with title",
			code:      "interface ProfileCardProps { title: string }\nexport function ProfileCard() {}",
			wantName:  "ProfileCard",
			wantKind:  KindCard,
			wantProps: MockProps{Title: "Sample Title"},
			contains:  []string{">Sample Title</h3>", "This is a preview of the ProfileCard component."},
		},
		{
			name:     "input placeholder uses lowercased name",
			code:     "export function EmailInput() {}",
			wantName: "EmailInput",
			wantKind: KindInput,
			contains: []string{`placeholder="Enter emailinput"`},
		},
		{
			name:     "dialog is a modal",
			code:     "export function ConfirmDialog() {}",
			wantName: "ConfirmDialog",
			wantKind: KindModal,
			contains: []string{"ConfirmDialog Preview", "This is a preview of the modal component.", ">Cancel<", ">Confirm<"},
		},
		{
			name:     "tag is a badge",
			code:     "interface TagListProps { text: string }\nexport function TagList() {}",
			wantName: "TagList",
			wantKind: KindBadge,
			contains: []string{`<span class="badge-info">Sample Text</span>`},
		},
		{
			name:      "default with click",
			code:      "interface AvatarProps { onClick: () => void }\nexport function Avatar() {}",
			wantName:  "Avatar",
			wantKind:  KindDefault,
			wantProps: MockProps{OnClick: "Avatar clicked"},
			contains:  []string{">Avatar</span>", "This is a preview of the Avatar component.", "Click to interact"},
		},
		{
			name:     "default without props interface",
			code:     "export function Spacer() { return null }",
			wantName: "Spacer",
			wantKind: KindDefault,
			excludes: []string{"Click to interact"},
		},
	}

	r := newTestRenderer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Render(tt.code)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if p.ComponentName != tt.wantName {
				t.Errorf("ComponentName = %q, want %q", p.ComponentName, tt.wantName)
			}
			if p.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", p.Kind, tt.wantKind)
			}
			if tt.wantProps != (MockProps{}) && p.Props != tt.wantProps {
				t.Errorf("Props = %+v, want %+v", p.Props, tt.wantProps)
			}
			html := string(p.HTML)
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("HTML missing %q:\n%s", want, html)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(html, unwanted) {
					t.Errorf("HTML unexpectedly contains %q:\n%s", unwanted, html)
				}
			}
		})
	}
}

func TestRenderer_Render_NoExport(t *testing.T) {
	r := newTestRenderer(t)

	p, err := r.Render("const Button = () => <button/>;\nexport default Button;")
	if !errors.Is(err, ErrNoComponentExport) {
		t.Fatalf("Render() error = %v, want ErrNoComponentExport", err)
	}
	if p != nil {
		t.Errorf("Render() = %+v, want nil", p)
	}
}

func TestRenderer_RenderState(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("wraps preview in frame", func(t *testing.T) {
		html, err := r.RenderState("export function StatusBadge() {}")
		if err != nil {
			t.Fatalf("RenderState() error = %v", err)
		}
		if !strings.Contains(string(html), `data-kind="badge"`) {
			t.Errorf("frame missing kind attribute:\n%s", html)
		}
		if !strings.Contains(string(html), `<span class="badge-info">StatusBadge</span>`) {
			t.Errorf("frame missing badge markup:\n%s", html)
		}
	})

	t.Run("error state", func(t *testing.T) {
		html, err := r.RenderState("no exports here")
		if !errors.Is(err, ErrNoComponentExport) {
			t.Errorf("RenderState() error = %v, want ErrNoComponentExport", err)
		}
		if !strings.Contains(string(html), "Preview Error") {
			t.Errorf("error state missing title:\n%s", html)
		}
		if !strings.Contains(string(html), ErrNoComponentExport.Error()) {
			t.Errorf("error state missing message:\n%s", html)
		}
	})
}

func TestNewRenderer_CustomRules(t *testing.T) {
	t.Run("custom order", func(t *testing.T) {
		r, err := NewRenderer(
			Rule{Kind: KindCard, Keywords: []string{"card"}, Template: "card"},
			Rule{Kind: KindButton, Keywords: []string{"button"}, Template: "button"},
		)
		if err != nil {
			t.Fatalf("NewRenderer() error = %v", err)
		}
		p, err := r.Render("export function CardButton() {}")
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if p.Kind != KindCard {
			t.Errorf("Kind = %q, want %q", p.Kind, KindCard)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := NewRenderer(Rule{Kind: "chart", Keywords: []string{"chart"}, Template: "chart"})
		if err == nil {
			t.Error("NewRenderer() expected error for unknown template")
		}
	})
}
