package utils

import (
	"fmt"

	"vidbatch/models"
)

// requiredSettings lists the keys each publish backend cannot work without
var requiredSettings = map[string][]string{
	"local": {"baseDir"},
	"s3":    {"accessKey", "secretKey", "region", "bucket"},
	"gcs":   {"credentialsJSON", "bucket"},
	"sftp":  {"host", "user", "remoteDir"},
}

// ValidateDestination checks the backend type and its required settings.
func ValidateDestination(dest models.Destination) error {
	required, ok := requiredSettings[dest.Type]
	if !ok {
		return fmt.Errorf("unknown backend type: %s", dest.Type)
	}
	for _, key := range required {
		if dest.Settings[key] == "" {
			return fmt.Errorf("%s destination requires %q", dest.Type, key)
		}
	}
	if dest.Type == "sftp" && dest.Settings["password"] == "" && dest.Settings["privateKey"] == "" {
		return fmt.Errorf("sftp destination requires password or privateKey")
	}
	return nil
}
