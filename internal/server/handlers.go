// Package server exposes HTTP handlers, including WebSocket upgrades, the
// liveness endpoint, and the built-in test page.
package server

import (
	"fmt"
	"net/http"
)

// ServeWS handles WebSocket upgrade requests. It upgrades the HTTP
// connection, creates a new Client, and registers it with the gateway, which
// launches the client's read/write pumps.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Str("addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	select {
	case g.register <- newClient(conn, g, r.RemoteAddr):
	case <-g.ctx.Done():
		_ = conn.Close()
	}
}

// HealthHandler reports liveness with a fixed plain-text body.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Anarcroom server online")
}

// TestPageHandler serves an HTML test page for exercising the relay from a
// browser: join a room, send messages, and watch presence updates live.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPage)
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Anarcroom Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        #presence { color: #555; margin: 10px 0; }
    </style>
</head>
<body>
    <h1>Anarcroom Test</h1>

    <div>
        <input type="text" id="room" placeholder="Room" value="lobby">
        <input type="text" id="user" placeholder="Username">
        <button onclick="join()">Join</button>
        <button onclick="leave()">Leave</button>
    </div>

    <div id="presence">Online: -</div>
    <div id="messages"></div>

    <div>
        <input type="text" id="text" placeholder="Type a message..." size="40">
        <button onclick="send()">Send</button>
    </div>

    <script>
        let ws = null;
        const messages = document.getElementById('messages');

        function log(line) {
            const div = document.createElement('div');
            div.textContent = line;
            messages.appendChild(div);
            messages.scrollTop = messages.scrollHeight;
        }

        function emit(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: event, data: data}));
            }
        }

        function connect(onOpen) {
            ws = new WebSocket('ws://' + location.host + '/ws');
            ws.onopen = onOpen;
            ws.onclose = function() { log('-- disconnected --'); ws = null; };
            ws.onmessage = function(evt) {
                const frame = JSON.parse(evt.data);
                if (frame.event === 'message') {
                    log(frame.data.user + ': ' + frame.data.text);
                } else if (frame.event === 'presence-updated') {
                    document.getElementById('presence').textContent = 'Online: ' + frame.data;
                } else if (frame.event === 'user-joined') {
                    log('-- ' + frame.data + ' joined --');
                } else if (frame.event === 'history-snapshot') {
                    frame.data.forEach(m => log(m.user + ': ' + m.text));
                }
            };
        }

        function join() {
            const room = document.getElementById('room').value;
            const user = document.getElementById('user').value;
            if (!room || !user) return;
            const doJoin = () => emit('join-room', {room: room, user: user});
            if (ws) { doJoin(); } else { connect(doJoin); }
            setInterval(() => emit('heartbeat', {room: room, user: user}), 60000);
        }

        function leave() {
            emit('leave-room', {
                room: document.getElementById('room').value,
                user: document.getElementById('user').value
            });
        }

        function send() {
            const input = document.getElementById('text');
            emit('send-message', {
                room: document.getElementById('room').value,
                user: document.getElementById('user').value,
                text: input.value,
                time: Date.now()
            });
            input.value = '';
        }

        document.getElementById('text').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') send();
        });
    </script>
</body>
</html>`
