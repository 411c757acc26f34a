package ui

import (
	"fmt"
	"io"
	"os"
)

// PrintWelcome выводит лого и краткую справку
func PrintWelcome(w io.Writer) {
	if logo, err := os.ReadFile("logo.txt"); err == nil {
		fmt.Fprintln(w, Paint(ColorCyan, string(logo)))
	}
	fmt.Fprintln(w, Paint(ColorBold, IconRobot+" visaAgent v0.1.0"))
	fmt.Fprintln(w, Paint(ColorGray, "Заполнение ирландской визовой анкеты AVATS через браузер"))
	fmt.Fprintln(w, Paint(ColorGray, "Используется: Firefox + Playwright"))
	fmt.Fprintln(w)
}

// PrintHint выводит подсказку о продолжении заявки
func PrintHint(w io.Writer, number string) {
	fmt.Fprintln(w, Paint(ColorCyan, IconBulb+" Совет:")+" продолжить заявку "+
		Paint(ColorYellow, number)+" можно командой "+Paint(ColorYellow, "visa resume "+number))
}
