package main

import (
	"fmt"
	"io"
	"os"

	sonic "github.com/bytedance/sonic"
	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printTitle(w io.Writer, title string) {
	_, _ = accent.Fprintln(w, title)
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = success.Fprintf(w, "✔ "+format+"\n", args...)
}

func printWarn(msg string) {
	_, _ = warn.Fprintln(os.Stderr, "! "+msg)
}

func printError(err error) {
	_, _ = danger.Fprintf(os.Stderr, "error: %v\n", err)
}

func printKV(w io.Writer, key string, value any) {
	_, _ = neutral.Fprintf(w, "  %-18s", key)
	_, _ = fmt.Fprintln(w, value)
}

func printJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
