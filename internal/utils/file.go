package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsImageFile(filename string) bool {
	ext := strings.TrimPrefix(GetFileExtension(filename), ".")
	for _, allowed := range AllowedImageTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

func GenerateUniqueFilename(originalFilename string) string {
	ext := GetFileExtension(originalFilename)
	timestamp := time.Now().Unix()
	randomStr := GenerateRandomString(8)

	return fmt.Sprintf("%d_%s%s", timestamp, randomStr, ext)
}
