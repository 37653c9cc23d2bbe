package player

// JXA sources passed to osascript with -e. argv[0] is always the application name.

const statusScript = `function run(argv) {
  const app = Application(argv[0]);
  const running = app.running();
  return JSON.stringify({ running: running, version: running ? app.version() : "" });
}`

const activateScript = `function run(argv) {
  Application(argv[0]).activate();
  return "ok";
}`

const collectionsScript = `function run(argv) {
  const app = Application(argv[0]);
  return JSON.stringify(app.playlists.name());
}`

const tracksScript = `function run(argv) {
  const app = Application(argv[0]);
  const limit = parseInt(argv[2], 10);
  let playlist;
  try {
    playlist = app.playlists.byName(argv[1]);
    playlist.name();
  } catch (e) {
    throw new Error("collection not found: " + argv[1]);
  }
  const tracks = playlist.tracks;
  const ids = tracks.persistentID();
  const names = tracks.name();
  const artists = tracks.artist();
  const albums = tracks.album();
  const durations = tracks.duration();
  const n = limit > 0 ? Math.min(limit, ids.length) : ids.length;
  const out = [];
  for (let i = 0; i < n; i++) {
    out.push({ id: ids[i], name: names[i], artist: artists[i], album: albums[i], duration: durations[i] });
  }
  return JSON.stringify(out);
}`

const playScript = `function run(argv) {
  const app = Application(argv[0]);
  const hits = app.libraryPlaylists[0].tracks.whose({ persistentID: argv[1] })();
  if (hits.length === 0) {
    throw new Error("track not found: " + argv[1]);
  }
  app.play(hits[0]);
  return "ok";
}`

const stopScript = `function run(argv) {
  Application(argv[0]).stop();
  return "ok";
}`

const positionScript = `function run(argv) {
  Application(argv[0]).playerPosition = parseFloat(argv[1]);
  return "ok";
}`

const stateScript = `function run(argv) {
  return JSON.stringify(Application(argv[0]).playerState());
}`
