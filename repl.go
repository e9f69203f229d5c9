package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/bitechat/bitechat/api"
	"github.com/bitechat/bitechat/bus"
	"github.com/bitechat/bitechat/config"
	"github.com/bitechat/bitechat/conversation"
	"github.com/bitechat/bitechat/token"
	"github.com/bitechat/bitechat/transport"
)

const replHelp = `commands:
  register <username> <password> [nickname] [email]
  login <username> <password>
  whoami
  conversations
  open <peer_user_id>
  send <text>
  emoji <text>
  image <path>
  voice <path> <duration_ms>
  older
  history
  retry <local_id>
  close
  logout
  quit`

// repl is the interactive terminal frontend. It owns at most one open
// conversation and one live transport session at a time.
type repl struct {
	ctx    context.Context
	client *api.Client
	tokens *token.Store
	cfg    *config.Config

	in  *bufio.Scanner
	out io.Writer

	unsub func()

	mu   sync.Mutex
	me   *api.User
	sess *conversation.Session
	live *transport.Session
}

func newRepl(ctx context.Context, client *api.Client, tokens *token.Store, b *bus.Bus, cfg *config.Config) *repl {
	r := &repl{
		ctx:    ctx,
		client: client,
		tokens: tokens,
		cfg:    cfg,
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
	}
	r.unsub = b.Subscribe(bus.Unauthorized, func() {
		r.printf("session expired, please login again")
		r.closeSession()
	})
	return r
}

func (r *repl) loop() {
	r.printf("bitechat %s", r.client.BaseURL())
	r.printf(replHelp)

	// Resume a stored session if the token is still usable.
	if id, err := r.tokens.Identity(); err == nil && !id.Expired() {
		if err := r.attach(); err == nil {
			r.printf("resumed session as %s", id.Username)
		}
	}

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		cmd, rest := splitCommand(line)
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := r.dispatch(cmd, rest); err != nil {
			r.printf("error: %v", err)
		}
	}
}

func (r *repl) dispatch(cmd, rest string) error {
	args := strings.Fields(rest)
	switch cmd {
	case "help":
		r.printf(replHelp)
	case "register":
		return r.cmdRegister(args)
	case "login":
		return r.cmdLogin(args)
	case "whoami":
		return r.cmdWhoami()
	case "conversations":
		return r.cmdConversations()
	case "open":
		return r.cmdOpen(args)
	case "send":
		return r.cmdSend(rest)
	case "emoji":
		return r.cmdEmoji(rest)
	case "image":
		return r.cmdImage(args)
	case "voice":
		return r.cmdVoice(args)
	case "older":
		return r.cmdOlder()
	case "history":
		return r.cmdHistory()
	case "retry":
		return r.cmdRetry(args)
	case "close":
		r.closeConversation()
	case "logout":
		return r.cmdLogout()
	default:
		r.printf("unknown command `%s`, try `help`", cmd)
	}
	return nil
}

func (r *repl) cmdRegister(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: register <username> <password> [nickname] [email]")
	}
	nickname, email := "", ""
	if len(args) > 2 {
		nickname = args[2]
	}
	if len(args) > 3 {
		email = args[3]
	}
	u, err := r.client.Register(r.ctx, args[0], args[1], nickname, email)
	if err != nil {
		return err
	}
	r.printf("registered user %d (%s), now `login`", u.ID, u.Username)
	return nil
}

func (r *repl) cmdLogin(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}
	if _, err := r.client.Login(r.ctx, args[0], args[1]); err != nil {
		return err
	}
	if err := r.attach(); err != nil {
		return err
	}
	r.mu.Lock()
	me := r.me
	r.mu.Unlock()
	r.printf("logged in as %s (uid %d)", me.Username, me.ID)
	return nil
}

// attach resolves the local user and opens the live transport. Called
// after login and on startup when a stored token is still valid.
func (r *repl) attach() error {
	me, err := r.client.Me(r.ctx)
	if err != nil {
		return err
	}

	live, err := transport.Connect(r.ctx, r.client.BaseURL(), r.client.Token(), transport.Handlers{
		OnEvent: r.handleEvent,
		OnClose: func() { r.printf("live connection closed") },
		OnError: func(err error) { glog.Errorf("transport: %v", err) },
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.me = me
	r.live = live
	r.mu.Unlock()
	return nil
}

func (r *repl) cmdWhoami() error {
	r.mu.Lock()
	me := r.me
	r.mu.Unlock()
	if me == nil {
		return fmt.Errorf("not logged in")
	}
	r.printf("%s (uid %d)", me.Username, me.ID)
	return nil
}

func (r *repl) cmdConversations() error {
	convs, err := r.client.ListConversations(r.ctx)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		r.printf("no conversations")
		return nil
	}
	for _, c := range convs {
		last := ""
		if c.LastMessage != nil {
			last = preview(c.LastMessage)
		}
		r.printf("#%d %s (uid %d) unread %d  %s", c.ID, c.Peer.Username, c.Peer.ID, c.UnreadCount, last)
	}
	return nil
}

func (r *repl) cmdOpen(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <peer_user_id>")
	}
	peerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad peer user id `%s`", args[0])
	}

	r.mu.Lock()
	me := r.me
	r.mu.Unlock()
	if me == nil {
		return fmt.Errorf("not logged in")
	}

	r.closeConversation()

	sess, err := conversation.Open(r.ctx, conversation.Options{
		Api:        r.client,
		LocalUID:   me.ID,
		PeerUserID: peerID,
		PageSize:   r.cfg.Chat.PageSize,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.sess = sess
	r.mu.Unlock()

	r.printf("opened conversation %d with user %d", sess.Store().ConversationID(), peerID)
	return r.cmdHistory()
}

func (r *repl) cmdSend(text string) error {
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	m, err := sess.SendText(text)
	if err != nil {
		return err
	}
	r.printf("sent #%d", m.ID)
	return nil
}

func (r *repl) cmdEmoji(text string) error {
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	m, err := sess.SendEmoji(text)
	if err != nil {
		return err
	}
	r.printf("sent #%d", m.ID)
	return nil
}

func (r *repl) cmdImage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: image <path>")
	}
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := sess.SendImage(f, baseName(args[0]), "")
	if err != nil {
		return err
	}
	r.printf("sent #%d %s", m.ID, m.MediaURL)
	return nil
}

func (r *repl) cmdVoice(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: voice <path> <duration_ms>")
	}
	durationMs, err := strconv.Atoi(args[1])
	if err != nil || durationMs <= 0 {
		return fmt.Errorf("bad duration `%s`", args[1])
	}
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := sess.SendVoice(f, baseName(args[0]), "", durationMs)
	if err != nil {
		return err
	}
	r.printf("sent #%d %s", m.ID, m.MediaURL)
	return nil
}

func (r *repl) cmdOlder() error {
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	more, err := sess.LoadOlder()
	if err != nil {
		return err
	}
	if !more {
		r.printf("no more history")
	}
	return r.cmdHistory()
}

func (r *repl) cmdHistory() error {
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	r.mu.Lock()
	me := r.me
	r.mu.Unlock()

	for _, e := range sess.Store().Messages() {
		r.printf("%s", formatEntry(&e, me.ID))
	}
	return nil
}

func (r *repl) cmdRetry(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: retry <local_id>")
	}
	sess, err := r.openSession()
	if err != nil {
		return err
	}
	sess.Retry(args[0])
	return nil
}

func (r *repl) cmdLogout() error {
	r.closeSession()
	if err := r.client.Logout(); err != nil {
		return err
	}
	r.printf("logged out")
	return nil
}

func (r *repl) openSession() (*conversation.Session, error) {
	r.mu.Lock()
	sess := r.sess
	r.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("no open conversation, `open <peer_user_id>` first")
	}
	return sess, nil
}

// handleEvent runs on the transport read goroutine.
func (r *repl) handleEvent(ev transport.Event) {
	r.mu.Lock()
	sess := r.sess
	r.mu.Unlock()

	switch ev.Type {
	case transport.EventNewMessage:
		if ev.Message != nil {
			r.printf("\n[user %d] %s", ev.Message.SenderID, preview(ev.Message))
		}
	case transport.EventRead:
		if ev.Receipt != nil {
			r.printf("\n[user %d read %d messages]", ev.Receipt.ReaderID, ev.Receipt.Updated)
		}
	}

	if sess != nil {
		sess.HandleEvent(ev)
	}
}

func (r *repl) closeConversation() {
	r.mu.Lock()
	sess := r.sess
	r.sess = nil
	r.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

// closeSession tears down the conversation and the live transport, used
// on logout and when the server rejects our token.
func (r *repl) closeSession() {
	r.closeConversation()

	r.mu.Lock()
	live := r.live
	r.live = nil
	r.me = nil
	r.mu.Unlock()
	if live != nil {
		_ = live.Close()
	}
}

func (r *repl) shutdown() {
	r.closeSession()
	if r.unsub != nil {
		r.unsub()
	}
}

func (r *repl) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func formatEntry(e *conversation.Entry, localUID int64) string {
	who := "peer"
	if e.SenderID == localUID {
		who = "me"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", e.CreatedAt.Local().Format("15:04"), who, preview(&e.Message))

	switch e.State {
	case conversation.StateFailed:
		fmt.Fprintf(&b, " (failed, `retry %s`)", e.LocalID)
	case conversation.StateSent, conversation.StateNone:
		if who == "me" && e.IsRead {
			b.WriteString(" (read)")
		}
	default:
		fmt.Fprintf(&b, " (%s)", e.State)
	}
	return b.String()
}

func preview(m *api.Message) string {
	switch m.Type {
	case api.MessageText, api.MessageEmoji:
		return m.Text
	case api.MessageImage:
		return "[image] " + m.MediaURL
	case api.MessageVoice:
		return "[voice] " + m.MediaURL
	case api.MessageSticker:
		return "[sticker] " + m.MediaURL
	default:
		return string(m.Type)
	}
}

func splitCommand(line string) (cmd, rest string) {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
