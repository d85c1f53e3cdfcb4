package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"reservas/client"
	"reservas/utils"

	"github.com/goccy/go-json"
)

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDateInput accepts YYYY-MM-DD, DD/MM/YYYY and the other sheet formats
func parseDateInput(input string) (time.Time, error) {
	t, err := utils.ParseSheetDate(input, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return t, nil
}

// describeError renders API conflicts with the blocking resources
func describeError(err error) error {
	var apiErr *client.APIError
	if !stderrors.As(err, &apiErr) {
		return err
	}
	if conflict, ok := apiErr.Conflict(); ok {
		return fmt.Errorf("%s: %s", apiErr.Message, strings.Join(conflict.Resources, ", "))
	}
	return fmt.Errorf("%s (HTTP %d)", apiErr.Message, apiErr.Status)
}
