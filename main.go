package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/op/go-logging"
	"go.bug.st/serial"

	"main/certs"
	"main/console"
	"main/oblogging"
	"main/profile"
	"main/sequencer"
	"main/web"
)

func SetupSerial() (string, serial.Mode) {
	var userInput string
	var chosenPort string
	isValid := false
	for !isValid {
		ports, err := console.ListPorts()
		if err != nil {
			fmt.Printf("Failed to enumerate serial ports: %s\n", err)
			os.Exit(1)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found!")
			os.Exit(1)
		}
		for _, port := range ports {
			fmt.Printf("Found port %v\n", port.Name)
			fmt.Printf("\tDescription:\t%s\n", port.Product)
			if port.IsUSB {
				fmt.Printf("\tUSB ID\t\t%s:%s\n", port.VID, port.PID)
				fmt.Printf("\tUSB Serial\t%s\n", port.SerialNumber)
			}
		}

		fmt.Printf("Select a serial port ")
		fmt.Scanln(&userInput)

		for _, port := range ports {
			if strings.EqualFold(userInput, port.Name) {
				isValid = true
				chosenPort = port.Name
			}
		}
	}

	settings := serial.Mode{
		BaudRate: 9600,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	fmt.Println("Default settings are 9600 8N1. Would you like to change these? (y/N)")
	fmt.Scanln(&userInput)
	if strings.ToLower(userInput) == "y" {
		var baudRate int
		var dataBits int

		fmt.Println("Default baud rate is 9600.")
		fmt.Printf("Enter the desired baud rate (Empty for defaults): ")
		fmt.Scanf("%d\n", &baudRate)
		if baudRate != 0 {
			settings.BaudRate = baudRate
		}

		fmt.Println("Default data bits is 8.")
		fmt.Printf("Enter the desired data bits (Empty for defaults): ")
		fmt.Scanf("%d\n", &dataBits)
		if dataBits != 0 {
			settings.DataBits = dataBits
		}
	}

	return chosenPort, settings
}

func main() {
	var debug bool
	var listOnly bool
	var webMode bool
	var serialDevice string
	var profileFile string
	var templateFile string
	var logFile string
	var webAddr string
	var tftpDir string
	var tftpAddr string

	flag.BoolVar(&debug, "debug", false, "Show debugging messages")
	flag.StringVar(&serialDevice, "serial", "", "Serial port connected to the device console")
	flag.StringVar(&profileFile, "profile", "", "Device profile JSON file")
	flag.StringVar(&templateFile, "template", "", "Onboarding template JSON file (stock SD-WAN template when empty)")
	flag.BoolVar(&listOnly, "list", false, "List serial ports and exit")
	flag.BoolVar(&webMode, "web", false, "Serve the web UI instead of running one onboarding")
	flag.StringVar(&webAddr, "web-addr", ":8080", "Web UI listen address")
	flag.StringVar(&tftpDir, "tftp", "", "Directory to serve read-only over TFTP (stage ca.crt here)")
	flag.StringVar(&tftpAddr, "tftp-addr", ":69", "TFTP listen address")
	flag.StringVar(&logFile, "log-file", "", "Also write logs to this file")
	flag.Parse()

	log := oblogging.New("onboarder")
	if debug {
		log.SetLogLevel(logging.DEBUG)
	} else {
		log.SetLogLevel(logging.INFO)
	}
	if logFile != "" {
		if err := log.NewFileTarget("file", logFile); err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
	}

	if listOnly {
		ports, err := console.ListPorts()
		if err != nil {
			log.Fatalf("Failed to enumerate serial ports: %v", err)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found!")
			return
		}
		for _, port := range ports {
			fmt.Printf("Found port %v\n", port.Name)
			fmt.Printf("\tDescription:\t%s\n", port.Product)
			if port.IsUSB {
				fmt.Printf("\tUSB ID\t\t%s:%s\n", port.VID, port.PID)
				fmt.Printf("\tUSB Serial\t%s\n", port.SerialNumber)
			}
		}
		return
	}

	if tftpDir != "" {
		server := certs.NewServer(tftpDir, log)
		go func() {
			if err := server.ListenAndServe(tftpAddr); err != nil {
				log.Errorf("TFTP server stopped: %v", err)
			}
		}()
	}

	if webMode {
		log.Fatal(web.ServeWeb(webAddr, log))
	}

	if profileFile == "" {
		log.Fatal("Provide a device profile with -profile, or run with -web")
	}

	prof, err := profile.LoadProfile(profileFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if errs := prof.Validate(); len(errs) > 0 {
		for _, err := range errs {
			log.Errorf("Invalid profile: %v", err)
		}
		os.Exit(1)
	}

	tmplSteps := profile.DefaultTemplate()
	if templateFile != "" {
		tmplSteps, err = profile.LoadTemplate(templateFile)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	steps, err := profile.Render(prof, tmplSteps)
	if err != nil {
		log.Fatalf("%v", err)
	}

	settings := serial.Mode{
		BaudRate: 9600,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	if serialDevice == "" {
		serialDevice, settings = SetupSerial()
	}

	transport, err := console.OpenSerial(serialDevice, &settings)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer transport.Close()
	log.Infof("Console connection to %s is open", serialDevice)

	classifier, err := console.NewClassifier(console.DefaultRules())
	if err != nil {
		log.Fatalf("%v", err)
	}

	seq := sequencer.New(transport, classifier, prof.Credentials, log)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		log.Warnf("Interrupt received, cancelling session")
		seq.Cancel()
	}()

	err = seq.Run(steps)
	for _, line := range seq.Report().Summary() {
		fmt.Println(line)
	}
	if err != nil {
		log.Errorf("Onboarding failed: %v", err)
		os.Exit(1)
	}
	log.Infof("Onboarding of %s finished successfully", prof.Hostname)
}
