package theme

type Theme interface {
	RenderNote(lane int, denom int) string
	RenderHitField(lane int) string
	JudgementLabel(name string) string
}
