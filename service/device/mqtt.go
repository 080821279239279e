package device

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	goxerrors "github.com/mdobak/go-xerrors"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/service/lgr"
)

const mqttConnectWait = 5 * time.Second

type mqttService struct {
	Client  mqtt.Client
	Topic   string
	Timeout time.Duration
}

// NewMQTT publishes counts to topic for devices that subscribe to a broker
// instead of exposing an HTTP endpoint. The client keeps reconnecting in the
// background, so an unreachable broker at startup is only logged.
func NewMQTT(broker, clientID, topic string, timeout time.Duration) IService {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetWriteTimeout(timeout)

	opts.OnConnect = func(_ mqtt.Client) {
		lgr.Logger.Info(
			"device mqtt connection established",
			slog.String("broker", broker),
			slog.String("clientID", clientID),
		)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		lgr.Logger.Warn(
			"device mqtt connection lost, will auto-reconnect",
			slog.String("broker", broker),
			slog.Any("error", err),
		)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(mqttConnectWait) {
		lgr.Logger.Warn(
			"device mqtt broker not reachable yet",
			slog.String("broker", broker),
			slog.Duration("waited", mqttConnectWait),
		)
	}

	return &mqttService{
		Client:  client,
		Topic:   topic,
		Timeout: timeout,
	}
}

func (svc *mqttService) Update(_ context.Context, count int) Result {
	start := time.Now()

	if !svc.Client.IsConnectionOpen() {
		return Result{Outcome: ConnectionFailed, Err: goxerrors.New("mqtt broker not connected")}
	}

	token := svc.Client.Publish(svc.Topic, 0, false, strconv.Itoa(count))
	if !token.WaitTimeout(svc.Timeout) {
		return Result{Outcome: TimedOut, Err: goxerrors.WithStackTrace(xerrors.Errorf("mqtt publish not acknowledged within %v", svc.Timeout), 0), Elapsed: time.Since(start)}
	}
	if err := token.Error(); err != nil {
		return Result{Outcome: ConnectionFailed, Err: goxerrors.WithStackTrace(err, 0), Elapsed: time.Since(start)}
	}

	return Result{Outcome: Delivered, Elapsed: time.Since(start)}
}

func (svc *mqttService) Close() error {
	svc.Client.Disconnect(250)
	return nil
}
