// internal/delivery/open.go
package delivery

// Open returns an AMQP sender when url is set and MockSender otherwise.
func Open(url, queue string) (Sender, func() error, error) {
	if url == "" {
		return MockSender{}, func() error { return nil }, nil
	}
	s, closer, err := DialAMQP(url, queue)
	if err != nil {
		return nil, nil, err
	}
	return s, closer, nil
}
