package ui

import "fmt"

// FormatStatus возвращает иконку, цвет и текст для статуса заявки
func FormatStatus(status string) (icon, color, text string) {
	switch status {
	case "completed":
		return IconCheckmark, ColorGreen, "отправлена"
	case "ready":
		return IconDocument, ColorBlue, "заполнена, ждет отправки"
	case "failed":
		return IconCross, ColorRed, "ошибка"
	case "running":
		return IconPlay, ColorCyan, "заполняется"
	case "pending":
		return IconClock, ColorYellow, "ожидает"
	default:
		return IconClock, ColorYellow, status
	}
}

// FormatPage переводит состояние страницы (form:3, error, ...) в подпись для вывода.
func FormatPage(page string) string {
	var n int
	if _, err := fmt.Sscanf(page, "form:%d", &n); err == nil {
		return fmt.Sprintf("страница %d из 10", n)
	}
	switch page {
	case "":
		return "-"
	case "home":
		return "главная"
	case "consent":
		return "согласие"
	case "retrieve":
		return "восстановление заявки"
	case "error":
		return "страница ошибки"
	case "confirmation":
		return "подтверждение"
	case "offsite":
		return "вне сайта"
	default:
		return page
	}
}
