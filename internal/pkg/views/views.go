package views

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
)

type View string

const (
	Start    View = "START"
	Splash   View = "SPLASH"
	Register View = "REGISTER"
	Chat     View = "CHAT"
	Config   View = "CONFIG"
)

type Event string

const (
	EventStart       Event = "start"
	EventIntroDone   Event = "intro-done"
	EventRegistered  Event = "registered"
	EventBack        Event = "back"
	EventAdminLogin  Event = "admin-login"
	EventConfigSaved Event = "config-saved"
)

var (
	ErrInvalidTransition = errors.New("invalid view transition")
	ErrIncorrectPassword = errors.New("incorrect password")
)

var transitions = map[View]map[Event]View{
	Start: {
		EventStart:      Splash,
		EventAdminLogin: Config,
	},
	Splash: {
		EventIntroDone: Register,
	},
	Register: {
		EventRegistered: Chat,
		EventBack:       Start,
	},
	Chat: {
		EventBack: Start,
	},
	Config: {
		EventConfigSaved: Start,
	},
}

// Machine tracks the view of one visitor.
type Machine struct {
	mutex         sync.Mutex
	current       View
	adminPassword string
	loginFailed   bool
}

func NewMachine(adminPassword string) *Machine {
	return &Machine{
		current:       Start,
		adminPassword: adminPassword,
	}
}

func (instance *Machine) Current() View {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.current
}

// LoginFailed reports whether the last admin gate submission was rejected.
func (instance *Machine) LoginFailed() bool {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.loginFailed
}

func (instance *Machine) Fire(event Event) (View, error) {
	if event == EventAdminLogin {
		return instance.Current(), fmt.Errorf("%w: %s requires a password", ErrInvalidTransition, event)
	}

	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.fire(event)
}

// AdminLogin moves to the configuration view when password matches. On any
// other value the view is left unchanged and the error flag is raised.
func (instance *Machine) AdminLogin(password string) (View, error) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	if subtle.ConstantTimeCompare([]byte(password), []byte(instance.adminPassword)) != 1 {
		instance.loginFailed = true
		return instance.current, ErrIncorrectPassword
	}

	view, err := instance.fire(EventAdminLogin)
	if err != nil {
		return view, err
	}
	instance.loginFailed = false
	return view, nil
}

func (instance *Machine) fire(event Event) (View, error) {
	next, ok := transitions[instance.current][event]
	if !ok {
		return instance.current, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, instance.current)
	}

	instance.current = next
	if next != Start {
		instance.loginFailed = false
	}
	return next, nil
}
