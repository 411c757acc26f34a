package ui

// ANSI-коды, которыми раскрашен вывод команд visa.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Статусы заявки
const (
	IconCheckmark = "✓"
	IconCross     = "✗"
	IconPlay      = "▶"
	IconClock     = "⏳"
	IconDocument  = "📝"
)

// Разделы вывода
const (
	IconRobot = "🤖"
	IconGlobe = "🌐"
	IconArrow = "↗"
	IconBulb  = "💡"
	IconList  = "📋"
	IconChart = "📊"
	IconTime  = "🕐"
	IconChat  = "💬"
	IconLoop  = "🔄"
)

// Paint оборачивает текст в цвет и сбрасывает его в конце.
func Paint(color, text string) string {
	return color + text + ColorReset
}
