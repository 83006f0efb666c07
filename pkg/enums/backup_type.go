package enums

import "fmt"

// BackupType distinguishes user-initiated snapshots from scheduled ones.
type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeAutomatic BackupType = "automatic"
)

// IsValid reports whether the value is known.
func (b BackupType) IsValid() bool {
	return b == BackupTypeManual || b == BackupTypeAutomatic
}

// ParseBackupType converts raw input into a BackupType.
func ParseBackupType(value string) (BackupType, error) {
	switch BackupType(value) {
	case BackupTypeManual:
		return BackupTypeManual, nil
	case BackupTypeAutomatic:
		return BackupTypeAutomatic, nil
	}
	return "", fmt.Errorf("invalid backup type %q", value)
}
