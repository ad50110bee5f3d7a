package rabbitmq

// QueueConfig описывает очередь уведомлений и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые слушает сервис отправки писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.credits", RoutingKey: "credits.granted"},
		{QueueName: "notification.team", RoutingKey: "team.invited"},
	}
}
