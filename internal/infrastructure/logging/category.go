package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	RabbitMQ        Category = "RabbitMQ"
	World           Category = "World"
	Sound           Category = "Sound"
	WebSocket       Category = "WebSocket"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	ExternalService SubCategory = "ExternalService"
	RateLimiting    SubCategory = "RateLimiting"

	// RabbitMQ
	Publish     SubCategory = "Publish"
	Consume     SubCategory = "Consume"
	Binding     SubCategory = "Binding"
	Serialize   SubCategory = "Serialize"
	Deserialize SubCategory = "Deserialize"

	// Sound
	Propagation SubCategory = "Propagation"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientID     ExtraKey = "ClientId"
	RoomID       ExtraKey = "RoomId"
	ZoneID       ExtraKey = "ZoneId"
	RoutingKey   ExtraKey = "RoutingKey"
	QueueName    ExtraKey = "QueueName"
	EventVariant ExtraKey = "EventVariant"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
