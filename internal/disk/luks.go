package disk

import (
	"io"

	"github.com/google/uuid"
)

// MappedName is the device-mapper name the encrypted root is opened as.
const MappedName = "root"

// MappedDevice is the path of the opened encrypted root.
const MappedDevice = "/dev/mapper/" + MappedName

type LUKSContainer struct {
	// Device is the raw partition holding the LUKS header.
	Device string
	UUID   string
	Name   string
}

func NewLUKSContainer(device string) *LUKSContainer {
	return &LUKSContainer{
		Device: device,
		Name:   MappedName,
	}
}

// GenUUID assigns a random UUID unless one is already set. If rng is nil the
// default random source is used.
func (lc *LUKSContainer) GenUUID(rng io.Reader) error {
	if lc == nil || lc.UUID != "" {
		return nil
	}
	var id uuid.UUID
	var err error
	if rng == nil {
		id, err = uuid.NewRandom()
	} else {
		id, err = uuid.NewRandomFromReader(rng)
	}
	if err != nil {
		return err
	}
	lc.UUID = id.String()
	return nil
}

// MappedDevice returns the path the container is exposed at once opened.
func (lc *LUKSContainer) MappedDevice() string {
	return "/dev/mapper/" + lc.Name
}

// FormatArgs are the cryptsetup arguments writing the LUKS header. The
// passphrase is read from standard input.
func (lc *LUKSContainer) FormatArgs() []string {
	args := []string{"luksFormat", "--batch-mode"}
	if lc.UUID != "" {
		args = append(args, "--uuid", lc.UUID)
	}
	return append(args, "--key-file=-", lc.Device)
}

// OpenArgs are the cryptsetup arguments opening the container. The
// passphrase is read from standard input.
func (lc *LUKSContainer) OpenArgs() []string {
	return []string{"open", "--key-file=-", lc.Device, lc.Name}
}

func (lc *LUKSContainer) CloseArgs() []string {
	return []string{"close", lc.Name}
}
