package auth

import (
	"errors"
	"strconv"
)

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid subject claim")
	}
	return id, nil
}
