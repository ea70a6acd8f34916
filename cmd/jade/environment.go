package main

import (
	"github.com/sirupsen/logrus"

	"github.com/crystal-linux/jade/internal/common"
	"github.com/crystal-linux/jade/internal/fsnode"
	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/plan"
	"github.com/crystal-linux/jade/internal/provision"
	"github.com/crystal-linux/jade/internal/runner"
)

// environment wires the components of one invocation.
type environment struct {
	logger      *logrus.Entry
	provisioner *provision.Provisioner
	installer   *install.Installer
}

func newEnvironment(config *jadeConfig, dryRun bool) *environment {
	logger := common.RunLogger(logrus.StandardLogger())
	dryRun = dryRun || config.DryRun
	if dryRun {
		logger.Info("dry run, no changes will be made")
	}

	host := runner.NewHost(logger, dryRun)
	host.ChrootCommand = config.ChrootCommand
	files := fsnode.NewWriter(logger, dryRun)

	p := provision.New(host, files, logger)
	p.Root = config.MountRoot
	p.EncryptionScript = config.EncryptionScript

	i := install.New(host, files, logger)
	i.PacstrapCommand = config.PacstrapCommand
	i.HostPacmanConf = config.HostPacmanConf
	i.EncryptionScript = config.EncryptionScript
	i.BasePackages = config.BasePackages
	i.Services = config.Services
	i.Theme = config.Theme

	return &environment{
		logger:      logger,
		provisioner: p,
		installer:   i,
	}
}

func (e *environment) executor() *plan.Executor {
	return &plan.Executor{
		Provisioner: e.provisioner,
		Installer:   e.installer,
		Logger:      e.logger,
	}
}
