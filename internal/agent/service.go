package agent

import (
	"os"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"

	config "github.com/sigil-io/agent/internal/config"
)

// ServiceProgram implements the service.Interface
type ServiceProgram struct {
	exit   chan struct{}
	config *config.Config
}

func (p *ServiceProgram) Start(s service.Service) error {
	logrus.Infoln("Sigil Agent service starting")
	go p.run()
	return nil
}

func (p *ServiceProgram) run() {
	// Start the agent web service
	_, err := StartWebService(p.config)

	if err != nil {
		logrus.WithError(err).Errorf("Failed to start web service")
		return
	}

	logrus.Infoln("Sigil Agent service is running")
}

func (p *ServiceProgram) Stop(s service.Service) error {
	logrus.Infoln("Sigil Agent service stopping")
	close(p.exit)
	return nil
}

// CreateService creates a new service instance
func CreateService(cfg *config.Config) (service.Service, error) {
	svcConfig := getServiceConfig()

	prg := &ServiceProgram{
		exit:   make(chan struct{}),
		config: cfg,
	}

	return service.New(prg, svcConfig)
}

// getServiceConfig returns the service configuration
func getServiceConfig() *service.Config {
	exePath, err := os.Executable()

	if err != nil {
		logrus.Fatal(err)
	}

	return &service.Config{
		Name:        "sigil",
		DisplayName: "Sigil Agent Service",
		Description: "Sigil Agent - local broker for browser based session logins",
		Executable:  exePath,
		Arguments: []string{
			"agent", // Runs the web server
		},
	}
}
