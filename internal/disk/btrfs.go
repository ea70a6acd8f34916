package disk

type Btrfs struct {
	Label      string
	Subvolumes []BtrfsSubvolume
}

// NewRootBtrfs returns the root filesystem of an automatic layout: @ is
// mounted as / and @home as /home.
func NewRootBtrfs() *Btrfs {
	return &Btrfs{
		Label: RootLabel,
		Subvolumes: []BtrfsSubvolume{
			{Name: "@", Mountpoint: "/"},
			{Name: "@home", Mountpoint: "/home"},
		},
	}
}

type BtrfsSubvolume struct {
	Name       string
	Mountpoint string
}

// MountOptions selects the subvolume when mounting the filesystem.
func (bs *BtrfsSubvolume) MountOptions() string {
	return "subvol=" + bs.Name
}
