package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Форматы вывода.
const (
	formatTable = "table"
	formatJSON  = "json"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1) //nolint:gochecknoglobals // Неизменяемый стиль

var cellStyle = lipgloss.NewStyle().Padding(0, 1) //nolint:gochecknoglobals // Неизменяемый стиль

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("formato no soportado %q (usa table o json)", format)
	}
}

// printJSON выводит v с отступами.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("ошибка кодирования JSON: %w", err)
	}
	return nil
}

// renderTable рисует таблицу с заголовками.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// readLine читает одну строку из in без перевода строки. Читает по байту,
// чтобы следующий вызов получил следующую строку того же потока.
func readLine(in io.Reader) (string, error) {
	var (
		line strings.Builder
		buf  = make([]byte, 1)
	)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("ошибка чтения ввода: %w", err)
		}
	}
	return strings.TrimRight(line.String(), "\r"), nil
}

// prompt выводит приглашение и читает ответ.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	value, err := readLine(cmd.InOrStdin())
	return strings.TrimSpace(value), err
}

// promptPassword читает пароль без эха, если ввод - терминал.
func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		return string(data), nil
	}
	return readLine(cmd.InOrStdin())
}
