// Package platform detects the host environment. The import inbox
// watcher and the clipboard helper behave differently on macOS, native
// Linux and the two WSL generations.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var (
	detectedPlatform Platform
	detectionDone    bool
)

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}
	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return detectLinuxOrWSL()
	default:
		return PlatformUnknown
	}
}

// detectLinuxOrWSL distinguishes between native Linux and WSL (1 or 2)
func detectLinuxOrWSL() Platform {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return detectWSLVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}
	versionStr := string(procVersion)
	if strings.Contains(versionStr, "microsoft") || strings.Contains(versionStr, "Microsoft") {
		return detectWSLVersion()
	}
	return PlatformLinux
}

// detectWSLVersion distinguishes between WSL1 and WSL2. WSL2 kernels
// carry "microsoft-standard" in /proc/version; WSL1 has "Microsoft"
// without it.
func detectWSLVersion() Platform {
	procVersion, err := os.ReadFile("/proc/version")
	if err == nil {
		versionStr := string(procVersion)
		if strings.Contains(versionStr, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(versionStr, "Microsoft") {
			return PlatformWSL1
		}
	}

	// /run/WSL and /dev/vsock exist only under WSL2.
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	if _, err := os.Stat("/dev/vsock"); err == nil {
		return PlatformWSL2
	}

	// Assume WSL1 when WSL was detected but the version is unclear; it
	// has more limitations, so that is the safer default.
	return PlatformWSL1
}

// IsWSL returns true if running in any WSL environment
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport checks if a path's filesystem supports fsnotify
// events reliably. Returns a warning message if the path sits on a
// problematic filesystem (9p, nfs, cifs, sshfs), or "" if file watching
// should work. The import inbox watcher surfaces this to explain why
// dropped files might not be picked up automatically.
func CheckFsnotifySupport(path string) string {
	// Only relevant on Linux (WSL2 uses 9p for Windows filesystem access)
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	// /proc/mounts format: device mountpoint fstype options ...
	// Use the longest mountpoint containing the path.
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(string(mounts), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint := fields[1]
		fsType := fields[2]
		if strings.HasPrefix(absPath, mountPoint) && len(mountPoint) > len(matchedMount) {
			matchedMount = mountPoint
			matchedFsType = fsType
		}
	}
	if matchedFsType == "" {
		return ""
	}

	switch {
	case matchedFsType == "9p":
		return "Import inbox on 9p mount (WSL2 Windows filesystem): file watching disabled. Use 'deskroster import' instead."
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "Import inbox on NFS mount: file watching may be unreliable."
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "Import inbox on CIFS/SMB mount: file watching may be unreliable."
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "Import inbox on SSHFS mount: file watching disabled. Use 'deskroster import' instead."
	}
	return ""
}
