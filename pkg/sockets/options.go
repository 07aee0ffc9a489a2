package sockets

import "time"

func WithDelimiter(d byte) func(*Conn) {
	return func(s *Conn) {
		s.delimiter = d
	}
}

func WithDialTimeout(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.dialTimeout = d
	}
}

func WithPingIntervalSec(p int) func(*Conn) {
	return func(s *Conn) {
		s.pingIntervalSecs = p
	}
}

func WithPingMsg(msg []byte) func(*Conn) {
	return func(s *Conn) {
		s.pingMsg = msg
	}
}

func OnMessage(f func([]byte, Connection)) func(*Conn) {
	return func(s *Conn) {
		s.onMessage = f
	}
}

func OnError(f func(error)) func(*Conn) {
	return func(s *Conn) {
		s.onError = f
	}
}

func OnConnected(f func(Connection)) func(*Conn) {
	return func(s *Conn) {
		s.onConnected = f
	}
}
