package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gopkg.in/yaml.v2"

	"github.com/matt-g-everett/skytx/anim"
	"github.com/matt-g-everett/skytx/api"
	"github.com/matt-g-everett/skytx/render"
	"github.com/matt-g-everett/skytx/stream"
)

type app struct {
	Config   stream.Config
	Client   mqtt.Client
	Pipeline *anim.Pipeline
	Streamer *stream.Streamer

	sinkStop chan struct{}
}

func newApp() *app {
	a := new(app)
	a.sinkStop = make(chan struct{})
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
}

func (a *app) run() {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}

	go a.Streamer.Run(a.sinkStop)

	a.Pipeline.Start()
	a.Pipeline.Player().Play(time.Now())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-a.Pipeline.Faults():
		log.Printf("Pipeline fault: %v", err)
	case <-interrupt:
		log.Println("Shutting down")
	}

	a.Pipeline.Stop()
	close(a.sinkStop)
}

func (a *app) readConfig(configPath string) {
	f, err := os.Open(configPath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&a.Config)
	if err != nil {
		panic(err)
	}
}

func main() {
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	log.Printf("Config: %+v", a.Config)

	frameRate := a.Config.Animation.FrameRate
	if frameRate == 0 {
		frameRate = 30
	}
	policy, err := anim.ParseBoundaryPolicy(a.Config.Animation.Boundary)
	if err != nil {
		panic(err)
	}
	player, err := anim.NewPlayer(frameRate, policy)
	if err != nil {
		panic(err)
	}
	track, err := a.Config.Track()
	if err != nil {
		panic(err)
	}

	if a.Config.Animation.Out > a.Config.Animation.In {
		player.SetRange(a.Config.Animation.In, a.Config.Animation.Out)
	} else if first, last, ok := track.Span(); ok && policy == anim.LoopToIn {
		// Loop the whole timeline when no explicit range is configured.
		player.SetRange(first, last)
	}

	a.Pipeline = anim.NewPipeline(player, track, render.NewGenerator(), nil)

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("skytx").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	client := mqtt.NewClient(options)

	a.Client = client
	a.Streamer = stream.NewStreamer(a.Config, client, a.Pipeline.Frames())

	preview := api.NewApi(a.Pipeline.Frames())
	addr := a.Config.API.Address
	if addr == "" {
		addr = ":3000"
	}
	go preview.Serve(addr)

	a.run()
}
