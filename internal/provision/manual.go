package provision

import (
	"fmt"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/runner"
)

// Manual formats and mounts operator supplied partitions. The specs are
// processed in their sorted order, so parents are mounted before their
// children. One spec must mount /. Every block device is checked before
// anything is formatted.
func (p *Provisioner) Manual(specs disk.PartitionSpecs) (*Mounted, error) {
	if _, ok := specs.Root(); !ok {
		return nil, fmt.Errorf("%w: manual partitioning needs a root partition", disk.ErrNoRootMountpoint)
	}
	all := specs.All()
	for _, spec := range all {
		if err := p.CheckDevice(spec.BlockDevice); err != nil {
			return nil, err
		}
	}
	if err := p.removeEncryptionScript(); err != nil {
		return nil, err
	}

	for _, spec := range all {
		target := p.target(spec.Mountpoint)
		mkfs := disk.Mkfs{Kind: spec.Filesystem}
		if name, args, ok := mkfs.Command(spec.BlockDevice); ok {
			cmd := runner.New(name, args...).Describe("format %s as %s", spec.BlockDevice, mkfs)
			if err := p.run(cmd); err != nil {
				return nil, err
			}
		} else {
			p.logger().Infof("not formatting %s", spec.BlockDevice)
		}
		mkdir := runner.New("mkdir", "-p", target).
			Describe("create mountpoint %s for %s", target, spec.BlockDevice)
		if err := p.run(mkdir); err != nil {
			return nil, err
		}
		if err := p.run(mountCommand(spec.BlockDevice, target, "")); err != nil {
			return nil, err
		}
	}

	p.logger().Infof("target tree mounted at %s", p.root())
	return &Mounted{
		root: p.root(),
	}, nil
}
