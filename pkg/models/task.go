package models

// Stage names the hop a task performs between two locations
type Stage string

const (
	StageWindowsToLinux  Stage = "Windows to Linux"
	StageLinuxToWindows  Stage = "Linux to Windows"
	StageLinuxToRemote   Stage = "Linux to Remote"
	StageWindowsToRemote Stage = "Windows to Remote"
	StageRemoteToLinux   Stage = "Remote to Linux"
	StageRemoteToWindows Stage = "Remote to Windows"
)

// RsyncTask is one concrete source -> destination transfer.
// Src and Dest are either local paths or "user@host:path" locators.
type RsyncTask struct {
	Src         string `json:"src"`
	Dest        string `json:"dest"`
	Description string `json:"description"`
	IsDirectory bool   `json:"is_directory,omitempty"`
	Stage       Stage  `json:"stage"`
}

// LocalSource reports whether Src is a path on this machine
func (t RsyncTask) LocalSource() bool {
	return t.Stage != StageRemoteToLinux && t.Stage != StageRemoteToWindows
}

// NewRsyncTask builds a task for mapping m, labelling it with the stage
func NewRsyncTask(stage Stage, src, dest string, m FileMapping) RsyncTask {
	return RsyncTask{
		Src:         src,
		Dest:        dest,
		Description: string(stage) + ": " + m.Label(),
		IsDirectory: m.IsDirectory,
		Stage:       stage,
	}
}
