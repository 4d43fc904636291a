//go:generate mockgen -source=../bootstrap.go -destination=./mock_topology_channel.go -package=mocks
//go:generate mockgen -source=../consumer.go  -destination=./mock_event_handler.go    -package=mocks
//go:generate mockgen -source=../publisher.go -destination=./mock_publish_channel.go  -package=mocks

package mocks
